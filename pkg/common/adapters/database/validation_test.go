package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Warky-Devs/backoffice/pkg/common/adapters/database"
	"github.com/Warky-Devs/backoffice/pkg/models"
)

func TestColumnValidatorReadsModel(t *testing.T) {
	v := database.NewColumnValidator((*models.Order)(nil))

	assert.True(t, v.IsValidColumn("order_number"))
	assert.True(t, v.IsValidColumn("shipping_recipient_name"))
	assert.True(t, v.IsValidColumn("o.shipping_phone"))
	assert.False(t, v.IsValidColumn("user"), "relations are not columns")
	assert.False(t, v.IsValidColumn("recipient_name"))
	assert.Contains(t, v.GetValidColumns(), "user_id")
}

func TestModelColumnMapsMatchModels(t *testing.T) {
	assert.NoError(t, database.NewColumnValidator(&models.Order{}).ValidateColumns(models.OrderColumns))
	assert.NoError(t, database.NewColumnValidator(&models.User{}).ValidateColumns(models.UserColumns))
	assert.NoError(t, database.NewColumnValidator(&models.Order{}).ValidateColumns(models.OrderPgSource.Columns))
}

func TestValidateColumnsReportsDrift(t *testing.T) {
	err := database.NewColumnValidator(models.User{}).ValidateColumns(database.Columns{
		"email":    "email",
		"password": "password_hash",
		"nick":     "nickname",
	})
	assert.EqualError(t, err, "invalid columns: nick->nickname, password->password_hash"+
		" (model has: created_at, email, full_name, id, phone, role, updated_at)")
}
