// Package domain contains the core business entities for veridoc:
// documents, pages, chunks, retrieval results, grading verdicts and the
// configuration settings that shape the pipeline. Domain types carry no
// infrastructure dependencies.
package domain
