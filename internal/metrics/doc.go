/*
包 metrics 提供基于 Prometheus 的评估指标采集能力，覆盖
LLM 网关、搜索网关与流水线运行三个维度。

# 概述

Collector 把所有指标注册在私有 Registry 上，批量评估结束后通过
WriteTextfile 以 node_exporter textfile 格式落盘，供 Prometheus
抓取或离线比较。Collector 同时实现 llm.CallRecorder、
websearch.SearchRecorder 与 evaluation.RunRecorder。

# 主要能力

  - LLM 指标：调用总数（按 provider/model/status，status 为 ok 或错误码）、
    调用耗时。
  - 搜索指标：搜索总数（按 provider/status）、搜索耗时。
  - 运行指标：运行总数（按 strategy/verified）、端到端耗时。
*/
package metrics
