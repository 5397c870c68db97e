package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange 结束日期必须晚于开始日期。
	ErrInvalidRange = errors.New("end date must be after start date")
	// ErrCarUnavailable 车辆在该区间已有 {approved, active} 订单。
	ErrCarUnavailable = errors.New("car is not available for the requested dates")
	// ErrNotAllowed 操作者没有该流转所需的角色/归属。
	ErrNotAllowed = errors.New("actor is not allowed to perform this transition")
)

// IllegalTransitionError 状态机不允许的流转。
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("invalid booking status transition: %s -> %s", e.From, e.To)
}

// IsIllegalTransition 判断是否状态机拒绝。
func IsIllegalTransition(err error) bool {
	var te *IllegalTransitionError
	return errors.As(err, &te)
}
