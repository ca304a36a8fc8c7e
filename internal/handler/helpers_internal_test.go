package handler

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestParseQueryTime(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		parsed, err := parseQueryTime(c, "at")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		if parsed == nil {
			return c.SendString("none")
		}
		return c.SendString(parsed.Format(time.RFC3339))
	})

	cases := []struct {
		target string
		want   string
	}{
		{target: "/", want: "none"},
		{target: "/?at=2024-05-01", want: "2024-05-01T00:00:00Z"},
		{target: "/?at=2024-05-01T10:00:00%2B02:00", want: "2024-05-01T08:00:00Z"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.target, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, tc.target)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, tc.want, string(body), tc.target)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/?at=soon", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
