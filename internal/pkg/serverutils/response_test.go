package serverutils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseEnvelopes(t *testing.T) {
	ok := SuccessResponse("created", map[string]string{"room_code": "12345678"})
	assert.Equal(t, 200, ok.Code)
	assert.Equal(t, "created", ok.Message)
	assert.Equal(t, "12345678", ok.Data["room_code"])

	fail := ErrorResponse(fiber.StatusConflict, "session is full")
	assert.Equal(t, fiber.StatusConflict, fail.Code)
	assert.Nil(t, fail.Data)

	payload, err := json.Marshal(fail)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "data", "empty data must be omitted")
}

func TestValidateRequest(t *testing.T) {
	type joinRequest struct {
		RoomCode string `json:"room_code" validate:"required,len=8,numeric"`
	}

	assert.NoError(t, ValidateRequest(&joinRequest{RoomCode: "12345678"}))

	err := ValidateRequest(&joinRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RoomCode")
	assert.Contains(t, err.Error(), "required")

	err = ValidateRequest(&joinRequest{RoomCode: "123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "len")
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body BaseResponse[any]
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, fiber.StatusNotFound, body.Code)
	assert.Equal(t, "session not found", body.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
