package errors

import "errors"

// 跨层共享的哨兵错误，各 service 文件顶部仍声明模块级错误

// ErrSessionNotFound 选择会话不存在或已过期
var ErrSessionNotFound = errors.New("选择会话不存在或已过期")

// ErrPermissionDenied 当前操作者无权操作目标资源
var ErrPermissionDenied = errors.New("无权限操作该资源")

// ErrSessionConflict 会话快照在读取后已被其他请求改写
var ErrSessionConflict = errors.New("选择会话已被并发修改")
