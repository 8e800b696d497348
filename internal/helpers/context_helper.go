package helpers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatabaseFromContext returns the request-scoped gorm handle installed by
// the database middleware.
func DatabaseFromContext(c *gin.Context) (*gorm.DB, bool) {
	value, exists := c.Get("db")
	if !exists {
		return nil, false
	}
	db, ok := value.(*gorm.DB)
	return db, ok
}

// UserIDFromContext returns the authenticated caller's id as set by the
// JWT middleware.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
