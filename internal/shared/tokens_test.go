package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	sess := &Session{ID: uuid.NewString(), AccountID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}

	raw, err := issuer.Issue(sess)
	require.NoError(t, err)

	principal, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, sess.AccountID, principal.AccountID)
	assert.Equal(t, sess.ID, principal.SessionID)
}

func TestTokenRejectsForeignSignature(t *testing.T) {
	sess := &Session{ID: "s1", AccountID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	raw, err := NewTokenIssuer("other-secret").Issue(sess)
	require.NoError(t, err)

	_, err = NewTokenIssuer("test-secret").Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	sess := &Session{ID: "s1", AccountID: uuid.New(), ExpiresAt: time.Now().Add(time.Minute)}
	raw, err := issuer.Issue(sess)
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPaginationBounds(t *testing.T) {
	p := NewPagination(0, 500, 250)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, p.Offset())

	assert.Equal(t, 40, NewPagination(3, 20, 100).Offset())
}
