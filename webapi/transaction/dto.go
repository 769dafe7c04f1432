package transaction

import (
	"github.com/triopay/triopay/pkg/domain/tx"
)

// ProcessRequest represents the request body for submitting a transaction.
type ProcessRequest struct {
	SourceAccount string `json:"source_account" validate:"required,min=4,max=34"`
	DestAccount   string `json:"dest_account" validate:"omitempty,min=4,max=34"`
	Amount        string `json:"amount" validate:"required"`
	Kind          string `json:"kind" validate:"required,oneof=deposit withdrawal transfer"`
	Currency      string `json:"currency" validate:"omitempty,len=3,uppercase,alpha"`
	Description   string `json:"description" validate:"omitempty,max=140"`
}

// ResultDTO is the API representation of a pipeline result.
type ResultDTO struct {
	Success   bool     `json:"success"`
	ID        string   `json:"id"`
	Reference string   `json:"reference,omitempty"`
	Amount    string   `json:"amount"`
	Fee       string   `json:"fee"`
	Total     string   `json:"total"`
	Steps     []string `json:"steps"`
	ErrReason string   `json:"error_reason,omitempty"`
}

func toResultDTO(res *tx.Result) ResultDTO {
	return ResultDTO{
		Success:   res.Success,
		ID:        res.ID.String(),
		Reference: res.Reference,
		Amount:    res.Amount.Amount().String(),
		Fee:       res.Fee.Amount().String(),
		Total:     res.Total.Amount().String(),
		Steps:     res.Steps,
		ErrReason: res.ErrReason,
	}
}
