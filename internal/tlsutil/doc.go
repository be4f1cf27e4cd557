// Package tlsutil 提供集中式 HTTP 客户端构造，
// 为模型网关与搜索后端提供安全加固的 TLS 设置（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
