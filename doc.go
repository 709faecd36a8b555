// Package weft is a small agent-state workflow engine: a typed shared-state
// container with per-field merge policies, a directed graph of named nodes
// with conditional edges, and a strictly sequential executor that emits
// progress events and degrades node failures into structurally valid
// reports instead of propagating them.
//
// A workflow is three declarations. The schema fixes every state field's
// update policy once, centrally:
//
//	schema := domain.NewSchema().
//		Overwrite("plan", "final_report").
//		Append("findings")
//
// The graph wires node bodies (pure functions of the state snapshot, with
// external collaborators closed over at construction time) through edges:
//
//	g, err := dsl.New("plan").
//		Node("plan", planFn).Then("research").
//		Node("research", researchFn).Then("aggregate").
//		Node("aggregate", aggFn).End().
//		Build()
//
// The engine runs it:
//
//	eng, err := weft.New(schema, g, weft.WithNodeTimeout(30*time.Second))
//	result, err := eng.Run(ctx, domain.Update{"plan": "..."})
//
// Run never returns node failures as errors: result.Status and result.Error
// distinguish a clean result from a degraded one, and the degraded result
// keeps the same shape with zeroed scores.
package weft
