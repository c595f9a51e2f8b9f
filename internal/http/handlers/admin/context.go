package admin

import (
	handlershared "github.com/optrack-next/internal/http/handlers/shared"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

func getOperatorID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "operator_id", "operator id invalid")
}

func currentActor(c *gin.Context) service.Actor {
	return service.Actor{
		Email: handlershared.GetContextString(c, "operator_email"),
		Name:  handlershared.GetContextString(c, "operator_name"),
	}
}
