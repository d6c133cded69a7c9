package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"giveaway-settlement/internal/platform/paystack"
)

const (
	maxWebhookBody = 1 << 20

	// WebhookBodyKey holds the verified raw webhook body.
	WebhookBodyKey = "webhook_body"
)

// PaystackSignature rejects webhook requests whose body does not carry a valid HMAC-SHA512
// signature. Rejections answer 404 so the endpoint is not discoverable.
func PaystackSignature(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			logger.Warn("Failed to read webhook body", zap.Error(err))
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		if !paystack.VerifySignature(secret, body, c.GetHeader(paystack.SignatureHeader)) {
			logger.Warn("Webhook signature mismatch",
				zap.String("request_id", getRequestID(c)),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.Set(WebhookBodyKey, body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
