package service

import (
	"errors"

	"gorm.io/gorm"
)

// notFound 把 gorm 的记录不存在转换为对应的领域错误
func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
