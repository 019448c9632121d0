package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/validator"
)

type sample struct {
	Kind     string `field:"kind" validate:"required,oneof=entry exit transfer"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
	Note     string `validate:"max=5"`
}

func TestValidateStruct_Valido(t *testing.T) {
	assert.Empty(t, validator.ValidateStruct(sample{Kind: "entry", Quantity: 1}))
	assert.Empty(t, validator.ValidateStruct(sample{Kind: "exit", Quantity: 2, Note: "ok"}))
}

func TestValidateStruct_ReportaNombreDeTag(t *testing.T) {
	errs := validator.ValidateStruct(sample{Kind: "adjust", Quantity: 0})
	require.Len(t, errs, 2)
	assert.Equal(t, "kind", errs[0].Field)
	assert.Equal(t, "oneof", errs[0].Tag)
	assert.Equal(t, "quantity", errs[1].Field)
	assert.Equal(t, "gt", errs[1].Tag)
}

func TestValidateStruct_SinTagUsaNombreGo(t *testing.T) {
	errs := validator.ValidateStruct(sample{Kind: "entry", Quantity: 1, Note: "demasiado largo"})
	require.Len(t, errs, 1)
	assert.Equal(t, "Note", errs[0].Field)
	assert.Equal(t, "max", errs[0].Tag)
	assert.Equal(t, "5", errs[0].Param)
}
