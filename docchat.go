// Package docchat provides a conversational documentation assistant.
// A one-shot ingestion step fetches a documentation page, splits it into
// overlapping segments, embeds them and persists a similarity index. The
// chat loop classifies each question, retrieves passages from that index
// when the question is answerable, and composes a grounded reply.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, openai/).
package docchat
