package booking

import (
	"time"

	"github.com/RentaDrive/RentaDrive/internal/user"
)

// AllowTransition 定义订单状态机的允许流转关系。
// 采用“有向图”方式进行配置，终态不允许再流转。
var AllowTransition = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Actor 执行流转的操作者（从鉴权上下文解析而来）。
type Actor struct {
	ID   string
	Role user.Role
}

// CheckActor 订单流转的集中授权策略：
// - approve / activate / complete 仅限 admin
// - cancel 允许订单归属人或 admin
// 策略放在状态机侧而不是 HTTP 层，保证所有调用路径走同一套检查。
func CheckActor(b *Booking, to Status, actor Actor) error {
	if actor.Role == user.RoleAdmin {
		return nil
	}
	if to == StatusCancelled && b != nil && b.UserID == actor.ID {
		return nil
	}
	return ErrNotAllowed
}

// ApplyTransition 对订单应用状态变更，并维护关键时间字段。
// 状态机拒绝时返回 IllegalTransitionError，不做任何修改。
func ApplyTransition(b *Booking, to Status, now time.Time) error {
	if b == nil {
		return &IllegalTransitionError{To: to}
	}
	from := b.Status
	if !CanTransition(from, to) {
		return &IllegalTransitionError{From: from, To: to}
	}

	b.Status = to

	switch to {
	case StatusApproved:
		if b.ApprovedAt == nil {
			t := now
			b.ApprovedAt = &t
		}
	case StatusActive:
		if b.StartedAt == nil {
			t := now
			b.StartedAt = &t
		}
	case StatusCompleted:
		if b.CompletedAt == nil {
			t := now
			b.CompletedAt = &t
		}
	case StatusCancelled:
		if b.CancelledAt == nil {
			t := now
			b.CancelledAt = &t
		}
	}
	return nil
}
