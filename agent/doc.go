// Copyright (c) VerifyFlow Authors.
// Licensed under the MIT License.

/*
Package agent implements the three-stage verification pipeline.

# Overview

A run turns a free-text goal into a verdict, strictly forward:

	goal ──► Planner ──► Plan{task, checklist}
	              │
	              ▼
	         Executor ──► output (snippet or "Error: ..." string)
	              │
	              ▼
	      verification.Strategy ──► Verdict{verified, reasoning}

# Core Components

Planner: asks the language-model gateway for one task and a checklist of
atomic factual assertions. Any gateway failure yields the sentinel plan
types.FailedPlan() instead of an error.

Executor: performs the task with exactly one web search. It never calls the
language model and never returns an error; failures are error-marked strings.
A sentinel task short-circuits without touching search.

Pipeline: composes the stages with a verification strategy chosen at
construction (see package agent/verification). Each stage is traced with
OpenTelemetry and its duration recorded in a histogram.

# Failure Absorption

Every stage reduces its own failures to a well-typed default value, so a
Pipeline.Run always completes and returns a Run.

# Subpackages

  - agent/verification: Verifier, SelfVerifier and NoVerifier strategies
  - agent/evaluation: sequential benchmark harness and result sinks
  - agent/report: Markdown rendering of a single run
*/
package agent
