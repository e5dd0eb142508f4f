package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountHandler_List(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockQueryService)
		r := setupTestRouter()
		r.GET("/accounts", NewAccountHandler(testLogger(), svc).List)

		closeDay, dueDay := 1, 8
		svc.On("ListAccounts", mock.Anything, testCaller).Return([]*account.Account{
			{ID: uuid.New(), OwnerID: testTenant, Name: "Nubank", Type: account.TypeCard, CloseDay: &closeDay, DueDay: &dueDay, Active: true},
		}, nil)

		w, resp := perform(t, r, http.MethodGet, "/accounts", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var accounts []AccountResponse
		require.NoError(t, json.Unmarshal(resp.Data, &accounts))
		require.Len(t, accounts, 1)
		assert.Equal(t, "card", accounts[0].Type)
		assert.Equal(t, 8, *accounts[0].DueDay)
		assert.Nil(t, accounts[0].EntityID)
	})

	t.Run("Store failure", func(t *testing.T) {
		svc := new(MockQueryService)
		r := setupTestRouter()
		r.GET("/accounts", NewAccountHandler(testLogger(), svc).List)
		svc.On("ListAccounts", mock.Anything, testCaller).Return(nil, errors.New("pool closed"))

		w, _ := perform(t, r, http.MethodGet, "/accounts", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
