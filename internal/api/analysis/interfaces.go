package analysis

import (
	"context"

	"github.com/datasleuth/analyst-backend/internal/entity"
)

// AnalysisUsecase runs one upload-and-ask request.
type AnalysisUsecase interface {
	Analyze(ctx context.Context, req *entity.AnalysisRequest) (*entity.AnalysisResult, error)
}

// ArtifactResolver maps committed chart ids to on-disk paths.
type ArtifactResolver interface {
	Resolve(id string) (string, bool)
}
