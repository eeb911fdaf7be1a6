package clienttest

import (
	"context"
	"net/http"
)

func contextWithAccount(r *http.Request, a *account) context.Context {
	return context.WithValue(r.Context(), ctxAccount{}, a)
}

func accountFrom(r *http.Request) *account {
	a, _ := r.Context().Value(ctxAccount{}).(*account)
	return a
}
