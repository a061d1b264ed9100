package models

import (
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

type Base struct {
	ID utils.ShortID `json:"id,omitempty"`
}

func NewBase() Base {
	return Base{
		ID: utils.NewShortID(),
	}
}
