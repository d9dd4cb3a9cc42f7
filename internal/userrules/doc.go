// Package userrules loads project-defined lint rules.
//
// Starlark rules live in the rules directory, one or more per .star file:
//
//	def _check(model):
//	    if not model.owner.startswith("team-"):
//	        return "owner %r is not a team" % model.owner
//
//	rule(name = "teamowner", summary = "Owners must be teams.", check = _check)
//
// A check returns None or False when the model passes, True to report the
// rule summary, or a string to report that explanation.
//
// CEL rules come from configuration. Their expression sees the same model
// fields and is true (or a non-empty string) when the model violates the
// rule:
//
//	linter:
//	  custom_rules:
//	    - name: nostagingstar
//	      summary: Staging models must list their columns.
//	      expr: model.path.startsWith("staging.") && model.is_star
package userrules
