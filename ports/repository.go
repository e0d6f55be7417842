package ports

import (
	"context"

	"netpath/domain/core"
	"netpath/models"
)

// AnalysisRepository persists completed analysis records. Persistence is a
// collaborator concern; the estimation core never touches it.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id core.AnalysisID) (*models.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
}
