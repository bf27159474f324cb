package service

import "errors"

// ErrNotOwner 在访问者不是实体拥有者时返回。
// 为避免泄露真实拥有者信息，错误信息中不携带任何主体标识。
var ErrNotOwner = errors.New("subject does not own this entity")
