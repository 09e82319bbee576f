package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），也支持 errors.Is（按 Module + Code 匹配）
//
// 使用场景：
//   - Store 错误：NOT_FOUND, CONFLICT, UNAVAILABLE
//   - Enrich 错误：PRECONDITION_FAILED, NOT_FOUND
//   - Provider 错误：NOT_FOUND, UNAVAILABLE
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "CONFLICT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "enrich", "provider"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 按 Module + Code 比较，忽略消息与底层错误。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"           // 资源不存在
	ErrorCodeNotSupported       = "NOT_SUPPORTED"       // 操作不支持
	ErrorCodeUnavailable        = "UNAVAILABLE"         // 服务不可用
	ErrorCodeInvalidInput       = "INVALID_INPUT"       // 输入无效
	ErrorCodeInternalError      = "INTERNAL_ERROR"      // 内部错误
	ErrorCodeConflict           = "CONFLICT"            // 唯一约束冲突
	ErrorCodePreconditionFailed = "PRECONDITION_FAILED" // 前置条件不满足
)

// 模块名称常量
const (
	ModuleStore     = "store"     // 存储模块
	ModuleEnrich    = "enrich"    // 元数据补全
	ModuleProvider  = "provider"  // 外部元数据服务
	ModuleRecommend = "recommend" // 推荐排序
	ModuleConfig    = "config"    // 配置
	ModuleCatalog   = "catalog"   // 目录种子数据
)

// ErrMissingUserID 表示调用方没有提供用户标识，不做任何 I/O。
var ErrMissingUserID = NewDomainError(ModuleRecommend, ErrorCodePreconditionFailed, "user id is required")

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsConflict 检查错误是否为 CONFLICT
func IsConflict(err error) bool {
	return hasCode(err, ErrorCodeConflict)
}

// IsPreconditionFailed 检查错误是否为 PRECONDITION_FAILED
func IsPreconditionFailed(err error) bool {
	return hasCode(err, ErrorCodePreconditionFailed)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}
