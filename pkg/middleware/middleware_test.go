package middleware

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vroute/pkg/history"
	"github.com/vango-dev/vroute/pkg/navigation"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/routepath"
)

func newTestController(t *testing.T, mw ...navigation.Middleware) *navigation.Controller {
	t.Helper()
	reg, err := router.NewRegistry(
		router.Definition{Pattern: "/", RedirectTo: "/write"},
		router.Definition{Pattern: "/write", Name: "write", View: "WriteJournaling"},
		router.Definition{Pattern: "/daily", Name: "daily", View: "DailyReport"},
		router.Definition{Pattern: "/a", RedirectTo: "/b"},
		router.Definition{Pattern: "/b", RedirectTo: "/a"},
	)
	require.NoError(t, err)
	h := history.NewMemory(routepath.MustParseLocation("/daily"))
	return navigation.New(reg, h, navigation.WithMiddleware(mw...))
}
