package http

import (
	"errors"
	"strconv"

	"triage_server/pkg/apperr"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// ErrInvalidBody is returned for bodies that are not a JSON object.
var ErrInvalidBody = apperr.BadRequest("request body must be a JSON object")

// bareError is the {error} body used by /api/triage and /api/triage/bulk.
func bareError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// bareAppError renders err as a bare {error}, keeping the AppError status.
func bareAppError(c *fiber.Ctx, err error) error {
	appErr := apperr.AsAppError(err)
	return bareError(c, appErr.Status, appErr.Message)
}

// decodeBody unmarshals a JSON object body into v. An empty body decodes to the zero value.
func decodeBody(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperr.InvalidInput(typeErr.Field, "wrong type")
		}
		return ErrInvalidBody
	}
	return nil
}

// messageBody accepts any JSON value for message so a non-string can be told apart from a missing one.
type messageBody struct {
	Message any `json:"message"`
}

// requireMessage returns the message string, or a MissingField error when it is absent or not a string.
func requireMessage(c *fiber.Ctx) (string, error) {
	var req messageBody
	if err := decodeBody(c, &req); err != nil {
		return "", err
	}
	msg, ok := req.Message.(string)
	if !ok {
		return "", apperr.MissingField("message")
	}
	return msg, nil
}

type messagesBody struct {
	Messages any `json:"messages"`
}

// requireMessages returns the messages array. Non-string entries become "" and fail per item.
func requireMessages(c *fiber.Ctx, max int) ([]string, error) {
	var req messagesBody
	if err := decodeBody(c, &req); err != nil {
		return nil, err
	}
	list, ok := req.Messages.([]any)
	if !ok || len(list) == 0 || len(list) > max {
		return nil, apperr.BatchSize(len(list), max)
	}
	out := make([]string, len(list))
	for i, v := range list {
		s, _ := v.(string)
		out[i] = s
	}
	return out, nil
}

// QueryBool parses a boolean query parameter, returning def when absent or malformed.
func QueryBool(c *fiber.Ctx, key string, def bool) bool {
	val := c.Query(key)
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}
