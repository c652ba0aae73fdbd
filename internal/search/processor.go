package search

import "github.com/hyperjump/kotae/internal/models"

// MaxTopK caps how many chunks a single request may ask for.
const MaxTopK = 100

// ProcessQuery validates the request and applies defaults and limits.
func ProcessQuery(req *models.AskRequest, defaultTopK, defaultMaxLength int) error {
	if err := req.Validate(defaultTopK, defaultMaxLength); err != nil {
		return err
	}
	if req.TopK > MaxTopK {
		req.TopK = MaxTopK
	}
	return nil
}
