// Package rules contains the built-in lint rules.
//
// Rules are listed explicitly in Builtin rather than registered from init
// functions, so the registry is an ordinary value built at startup:
//
//	registry := rules.Builtin().Union(userRules)
package rules
