package resp

import (
	"net/http"

	"BetHub/tools/errs"

	"github.com/gin-gonic/gin"
)

// httpStatus 业务码到 HTTP 状态码
func httpStatus(code int) int {
	switch code {
	case errs.UnauthenticatedError, errs.TokenExpiredError:
		return http.StatusUnauthorized
	case errs.ArgsError:
		return http.StatusBadRequest
	case errs.RecordNotFoundError:
		return http.StatusNotFound
	case errs.ConflictError:
		return http.StatusConflict
	case errs.GoneError:
		return http.StatusGone
	case errs.StoreUnavailableError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func OK(c *gin.Context, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["status"] = "success"
	c.JSON(http.StatusOK, data)
}

func Fail(c *gin.Context, err error) {
	ce := errs.AsCodeError(err)
	c.JSON(httpStatus(ce.Code), gin.H{
		"status": "error",
		"code":   ce.Code,
		"error":  ce.Msg,
		"detail": ce.Detail,
	})
}
