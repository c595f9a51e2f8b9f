package plant

import (
	handlershared "github.com/optrack-next/internal/http/handlers/shared"
	"github.com/optrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

func currentActor(c *gin.Context) service.Actor {
	return service.Actor{
		Email: handlershared.GetContextString(c, "operator_email"),
		Name:  handlershared.GetContextString(c, "operator_name"),
	}
}
