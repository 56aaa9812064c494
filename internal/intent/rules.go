package intent

import "sync"

// Rules are written against normalized text: lower-case, no accents, slang
// numerals already expanded ("50 lucas" arrives as "50 000").
const (
	amountExpr  = `(?P<amount>\d+(?:\.\d+)?(?: 000)?[km]?)`
	expenseTail = `\s*(?:(?:en|de|para)\b\s*)?(?P<description>.*)`
	incomeTail  = `\s*(?:(?:de|por|desde)\b\s*)?(?P<source>.*)`
	titleExpr   = `(?P<title>\S.*?)(?:\s+(?:para|el|manana|hoy)\b.*)?$`
)

var defaultGroups = sync.OnceValue(func() []Group {
	return []Group{
		{
			Intent: Expense,
			Triggers: []Rule{
				newRule("expense.add", `(?:agregar|anadir|nuevo)\s+gasto\b`),
				newRule("expense.kind", `\bgasto\s+(?:fijo|variable|extra)\b`),
				newRule("expense.past", `\b(?:pague|gaste|compre)\s*\d`),
				newRule("expense.noun", `\b(?:compra|gasto)\s*(?:de|por)?\s*\d`),
			},
			Extractors: []Rule{
				newRule("expense.add", `(?:agregar|anadir|nuevo)\s+gasto\s+(?P<kind>fijo|variable|extra)?\s*`+amountExpr+expenseTail),
				newRule("expense.kind", `\bgasto\s+(?P<kind>fijo|variable|extra)?\s*(?:(?:de|por)\b\s*)?`+amountExpr+expenseTail),
				newRule("expense.past", `\b(?:pague|gaste|compre)\s*`+amountExpr+expenseTail),
				newRule("expense.noun", `\b(?:compra|gasto)\s*(?:(?:de|por)\b\s*)?`+amountExpr+expenseTail),
			},
		},
		{
			Intent: Income,
			Triggers: []Rule{
				newRule("income.add", `(?:agregar|anadir|nuevo)\s+ingreso\b`),
				newRule("income.noun", `\bingreso\s*(?:de|por)?\s*\d`),
				newRule("income.received", `\b(?:recibi|me\s+pagaron|cobramos)\s*\d`),
				newRule("income.salary", `\b(?:sueldo|salario|pago)\s*(?:de|por)?\s*\d`),
			},
			Extractors: []Rule{
				newRule("income.add", `(?:agregar|anadir|nuevo)\s+ingreso\s*(?:(?:de|por)\b\s*)?`+amountExpr+incomeTail),
				newRule("income.noun", `\bingreso\s*(?:(?:de|por)\b\s*)?`+amountExpr+incomeTail),
				newRule("income.received", `\b(?:recibi|me\s+pagaron|cobramos)\s*`+amountExpr+incomeTail),
				newRule("income.salary", `\b(?:sueldo|salario|pago)\s*(?:(?:de|por)\b\s*)?`+amountExpr+incomeTail),
			},
		},
		{
			Intent: Task,
			Triggers: []Rule{
				newRule("task.add", `(?:agregar|nueva|crear)\s+tarea\b`),
				newRule("task.noun", `\btarea\s+\S`),
				newRule("task.obligation", `\b(?:tengo\s+que|debo|necesito)\s+\S`),
				newRule("task.verb", `\b(?:hacer|completar)\s+\S`),
			},
			Extractors: []Rule{
				newRule("task.add", `(?:agregar|nueva|crear)\s+tarea\s+`+titleExpr),
				newRule("task.noun", `\btarea\s+`+titleExpr),
				newRule("task.obligation", `\b(?:tengo\s+que|debo|necesito)\s+`+titleExpr),
				newRule("task.verb", `\b(?:hacer|completar)\s+`+titleExpr),
			},
		},
		{
			Intent: Reminder,
			Triggers: []Rule{
				newRule("reminder.noun", `\b(?:recordatorio|recordar)\b`),
				newRule("reminder.ask", `\b(?:recordarme|avisame)\b`),
				newRule("reminder.forget", `\bno\s+olvid(?:es?|ar)\b`),
			},
			Extractors: []Rule{
				newRule("reminder.noun", `\b(?:recordatorio|recordar)\s+`+titleExpr),
				newRule("reminder.ask", `\b(?:recordarme|avisame)\s+(?:(?:que|de)\s+)?`+titleExpr),
				newRule("reminder.forget", `\bno\s+olvid(?:es?|ar)\s+`+titleExpr),
			},
		},
	}
})

// DefaultGroups returns the built-in rule groups in precedence order. The
// slice is shared; callers must not modify it.
func DefaultGroups() []Group {
	return defaultGroups()
}
