package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massage-booking-api/internal/core/database/dbtest"
	"massage-booking-api/internal/domain"
	"massage-booking-api/internal/repo"
)

func TestListPagesAndCaps(t *testing.T) {
	users := repo.NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		u := &domain.User{Email: fmt.Sprintf("u%02d@example.com", i), Name: "User", LastName: fmt.Sprint(i), PasswordHash: "x"}
		require.NoError(t, users.Create(ctx, u, domain.RoleClient))
	}
	s := &Service{Users: users}

	page, err := s.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 25, page.Total)
	assert.Len(t, page.Items, 20)
	assert.Equal(t, []string{domain.RoleClient}, page.Items[0].Roles)

	page, err = s.List(ctx, ListQuery{Limit: 1000, Offset: 20})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)

	page, err = s.List(ctx, ListQuery{Q: "u07@"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, "u07@example.com", page.Items[0].Email)
}
