package errs

// 错误码分段：
//   500        服务内部错误
//   11xx       认证/鉴权
//   12xx       参数校验
//   13xx       资源状态（不存在/冲突/已消失）
//   14xx       存储层
const (
	ServerInternalError = 500

	UnauthenticatedError = 1101
	TokenExpiredError    = 1102

	ArgsError = 1201

	RecordNotFoundError = 1301
	ConflictError       = 1302
	GoneError           = 1303

	StoreUnavailableError = 1401
)

// 预定义错误：handler 层直接引用，JSON 序列化后返回给前端
var (
	ErrInternalServer   = NewCodeError(ServerInternalError, "server internal error")
	ErrUnauthenticated  = NewCodeError(UnauthenticatedError, "unauthenticated")
	ErrTokenExpired     = NewCodeError(TokenExpiredError, "token expired")
	ErrArgs             = NewCodeError(ArgsError, "invalid argument")
	ErrRecordNotFound   = NewCodeError(RecordNotFoundError, "record not found")
	ErrConflict         = NewCodeError(ConflictError, "state conflict")
	ErrGone             = NewCodeError(GoneError, "resource gone")
	ErrStoreUnavailable = NewCodeError(StoreUnavailableError, "store unavailable")
)
