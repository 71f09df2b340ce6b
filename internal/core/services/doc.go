// Package services implements the driving port interfaces.
// Services contain the core business logic: retrieval policy, prompt
// augmentation, grounding grading and the pipeline orchestrator.
//
// Services are pure Go with no CGO or external dependencies.
package services
