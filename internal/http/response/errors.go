package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-tutor/internal/platform/apierr"
)

var errInternal = errors.New("internal error")

// RespondAPIError writes err using the status and code of the first
// *apierr.Error in its chain. Anything else is a 500 with a generic message.
func RespondAPIError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", errInternal)
}
