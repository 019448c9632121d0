package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

func TestGenerateYParse(t *testing.T) {
	token, err := jwt.Generate("secreto", "u1", "bodeguero", "clinic-auth", time.Minute)
	require.NoError(t, err)

	claims, err := jwt.Parse("secreto", "clinic-auth", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "bodeguero", claims.Role)
}

func TestParse_Rechazos(t *testing.T) {
	token, err := jwt.Generate("secreto", "u1", "", "clinic-auth", time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", "", token)
	assert.Error(t, err, "firma incorrecta")

	_, err = jwt.Parse("secreto", "otro-emisor", token)
	assert.Error(t, err, "emisor distinto")

	expired, err := jwt.Generate("secreto", "u1", "", "", -time.Minute)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", "", expired)
	assert.Error(t, err, "expirado")

	_, err = jwt.Parse("", "", token)
	assert.Error(t, err)
}
