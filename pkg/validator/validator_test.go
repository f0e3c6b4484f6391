package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string    `json:"name" validate:"notblank"`
	NIK    string    `json:"nik" validate:"len=16,numeric"`
	RoleID uuid.UUID `json:"role_id" validate:"uuid_required"`
}

func TestValidateStruct_NotBlankUsesJSONName(t *testing.T) {
	errs := ValidateStruct(&sample{Name: "   ", NIK: "1234567890123456", RoleID: uuid.New()})
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].FailedField)
	assert.Equal(t, "notblank", errs[0].Tag)
	assert.Equal(t, "field 'name' failed on 'notblank'", Message(errs))
}

func TestValidateStruct_UUIDRequiredAndParams(t *testing.T) {
	errs := ValidateStruct(&sample{Name: "ok", NIK: "123"})
	require.Len(t, errs, 2)
	assert.Equal(t, "field 'nik' failed on 'len=16'", Message(errs))
	assert.Equal(t, "role_id", errs[1].FailedField)
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.Empty(t, ValidateStruct(&sample{Name: "Ahmad", NIK: "3501234567890001", RoleID: uuid.New()}))
	assert.Equal(t, "", Message(nil))
}
