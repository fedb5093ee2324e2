package protocol

// 错误码
const (
	ErrCodeUnknown             = 1000
	ErrCodeInvalidMsg          = 1001
	ErrCodeRateLimit           = 1002 // 速率限制
	ErrCodeInvalidInput        = 1003 // 空的猜测、空的选词
	ErrCodeInvalidConfig       = 1004 // 房间设置非法
	ErrCodeRoomNotFound        = 2001
	ErrCodeNotInRoom           = 2003
	ErrCodeGameFinished        = 2005
	ErrCodeWrongPhase          = 3001
	ErrCodeNotAuthorized       = 3002 // 非画手执行画手操作等
	ErrCodeInvalidChoice       = 3003 // 选择了不在候选中的词
	ErrCodeInsufficientPlayers = 3004
	ErrCodeNotAllReady         = 3005
	ErrCodeServerMaintenance   = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:             "未知错误",
	ErrCodeInvalidMsg:          "无效的消息格式",
	ErrCodeRateLimit:           "请求过于频繁",
	ErrCodeInvalidInput:        "输入无效",
	ErrCodeInvalidConfig:       "房间设置无效",
	ErrCodeRoomNotFound:        "房间不存在",
	ErrCodeNotInRoom:           "您不在房间中",
	ErrCodeGameFinished:        "游戏已结束",
	ErrCodeWrongPhase:          "当前阶段不允许该操作",
	ErrCodeNotAuthorized:       "无权执行该操作",
	ErrCodeInvalidChoice:       "该词不在候选列表中",
	ErrCodeInsufficientPlayers: "至少需要 2 名玩家",
	ErrCodeNotAllReady:         "还有玩家未准备",
	ErrCodeServerMaintenance:   "服务器维护中",
}
