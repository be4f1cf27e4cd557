// Copyright 2025-2026 VerifyFlow Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

Package websearch 提供 Executor 使用的网页搜索网关。

网关每次调用都会打开一个独立的 [Session]，执行一次查询，并在所有退出路径
（成功、空结果、错误乃至 panic）上关闭会话。搜索失败不会以 Go error 的形式
向上传播，而是作为 [SearchResult] 的一种状态返回。

# 核心接口/类型

  - Provider — 搜索后端（Open 打开会话）
  - Session — 一次查询的作用域资源
  - Gateway — 限流 + 会话管理 + 结果归一化
  - SearchResult — Found / NoResult / Failed 三态结果
  - DuckDuckGo — 基于 DuckDuckGo lite HTML 页面的后端

# 输出约束

搜索片段不得以 types.ErrorMarker 开头，否则会与 Executor 的错误输出混淆。
网关会跳过违反该约束的命中并记录告警。
*/
package websearch
