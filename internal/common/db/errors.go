package db

import (
	"errors"
	"fmt"
)

// StorageError 包装存储层/事务失败。
// 语义：调用方可以幂等地重试同一事务；领域错误（参数/状态类）不会被包装成 StorageError。
type StorageError struct {
	Op  string // 出错的操作，例如 "booking.create"
	Err error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "storage error"
	}
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WrapStorage 把底层错误包装为 StorageError；err 为 nil 时返回 nil。
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorage 判断是否是可重试的存储错误。
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
