// Package chain provides composable processing steps over named string
// variables and the sequential composers that wire them together.
//
// A Chain exposes a fixed set of named input and output variables and a
// single Call entry point. The composers in this package validate variable
// flow once at construction time (a step may not consume a variable that is
// not yet known, nor produce one that collides with an existing name) and
// then thread the accumulated variable environment through the steps strictly
// in order at call time.
//
// Three composers are provided:
//
//   - SequentialChain: general variable-flow composition over mappings
//   - SimpleSequentialChain: single string value threaded through 1-in/1-out steps
//   - ContextSequentialChain: variable-flow composition that additionally
//     prepends each prior step's rendered prompt and response onto the next
//     step's prompt
//
// LLMChain is the canonical leaf step: a prompt template rendered against the
// environment, sent to a model, its completion bound to one output variable.
package chain
