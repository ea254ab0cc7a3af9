package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope every JSON endpoint returns. Data and Error are
// mutually exclusive; Metadata is always present so clients can correlate
// a response with server logs by request ID.
type Response struct {
	Data     interface{} `json:"data"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorBody carries a machine-readable code, a human message, and optional
// per-field validation detail.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Metadata is request correlation info.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Success writes data wrapped in the envelope.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Data: data, Metadata: meta(c)})
}

// Fail writes a coded error with no field detail.
func Fail(c *gin.Context, status int, code ErrCode) {
	c.JSON(status, errEnvelope(c, code, nil))
}

// FailWithFields writes a coded error carrying field-level validation detail.
func FailWithFields(c *gin.Context, status int, code ErrCode, fields map[string]string) {
	c.JSON(status, errEnvelope(c, code, fields))
}

// AbortFail is Fail for middleware: it stops the handler chain.
func AbortFail(c *gin.Context, status int, code ErrCode) {
	c.AbortWithStatusJSON(status, errEnvelope(c, code, nil))
}

func errEnvelope(c *gin.Context, code ErrCode, fields map[string]string) Response {
	return Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields},
		Metadata: meta(c),
	}
}

func meta(c *gin.Context) Metadata {
	id := c.GetString(ContextKeyRequestID)
	if id == "" {
		// Middleware not applied (tests hitting a bare handler).
		id = uuid.NewString()
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
