// Package approval holds the human-in-the-loop domain model: the prompt
// request/response pair, remembered permission records, the append-only
// permission store and the durable journal of outstanding prompts.
package approval
