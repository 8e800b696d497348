package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farhanmaulana/eventgate/internal/helpers"
)

// WebhookSignatureMiddleware verifies the provider's HMAC over the raw
// body before the completion handler runs. The body is restored for the
// next handler to bind.
func WebhookSignatureMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Unable to read request body.")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		signature := c.GetHeader("X-Callback-Signature")
		if !helpers.VerifyWebhookSignature(secret, body, signature) {
			helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid webhook signature.")
			c.Abort()
			return
		}
		c.Next()
	}
}
