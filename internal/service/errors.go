package service

import "errors"

// 订单相关错误
var (
	ErrOrderInvalid      = errors.New("order invalid")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderFetchFailed  = errors.New("order fetch failed")
	ErrOrderCreateFailed = errors.New("order create failed")
	ErrOrderUpdateFailed = errors.New("order update failed")
	ErrOrderDeleteFailed = errors.New("order delete failed")
	ErrOrderCanceled     = errors.New("order canceled")
	ErrInvalidOrderItem  = errors.New("invalid order item")
)

// 订单项相关错误
var (
	ErrItemNotFound    = errors.New("item not found")
	ErrItemFetchFailed = errors.New("item fetch failed")
	ErrItemUpdateFailed = errors.New("item update failed")
	ErrItemDeleteFailed = errors.New("item delete failed")
)

// 流转相关错误
var (
	ErrTransitionInvalid     = errors.New("transition invalid")
	ErrUnknownStage          = errors.New("unknown stage")
	ErrTransitionSameStage   = errors.New("transition to same stage")
	ErrTransitionNotAllowed  = errors.New("transition not allowed")
	ErrJustificationRequired = errors.New("return justification required")
	ErrShippingDataRequired  = errors.New("shipping weight and volume required")
	ErrActorRequired         = errors.New("actor identity required")
	ErrMovementCreateFailed  = errors.New("movement record create failed")
)

// 编号分配相关错误
var (
	ErrSequenceExhausted = errors.New("sequence allocation attempts exhausted")
)

// 操作员与认证相关错误
var (
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrOperatorExists     = errors.New("operator already exists")
	ErrOperatorDisabled   = errors.New("operator disabled")
	ErrOperatorInvalid    = errors.New("operator invalid")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrTokenInvalid       = errors.New("token invalid")
)

// 上传相关错误
var (
	ErrUploadInvalid        = errors.New("upload invalid")
	ErrUploadTooLarge       = errors.New("upload too large")
	ErrUploadTypeNotAllowed = errors.New("upload type not allowed")
)
