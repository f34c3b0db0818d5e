package quality

import "strings"

// Keyword lists behind the lexical sub-scores. These encode the acceptance
// rubric's behavioral contract: changing a list changes which candidates pass.

var actionVerbs = []string{
	"develop", "implement", "build", "create", "design", "integrate",
	"deploy", "migrate", "automate", "configure", "establish", "deliver",
}

var valueVerbs = []string{
	"optimize", "reduce", "increase", "improve", "accelerate", "streamline",
	"enable", "save", "grow", "enhance", "minimize", "maximize",
}

var roleTerms = []string{
	"user", "customer", "operator", "manager", "administrator", "team",
	"stakeholder", "client", "analyst", "agent",
}

var techTerms = []string{
	"api", "service", "database", "platform", "system", "integration",
	"dashboard", "pipeline", "module", "interface", "architecture",
	"workflow", "infrastructure", "microservice", "queue", "cache",
}

// domainIndicators maps a known business domain to the vocabulary an item in
// that domain is expected to use. Unknown domains fall back to the words of
// the domain phrase itself.
var domainIndicators = map[string][]string{
	"logistics": {
		"warehouse", "dock", "inspection", "shipment", "freight", "carrier",
		"inventory", "route", "fleet", "dispatch", "pallet", "tracking",
	},
	"healthcare": {
		"patient", "clinical", "diagnosis", "treatment", "provider", "hipaa",
		"appointment", "record", "prescription", "triage", "insurance",
	},
	"finance": {
		"payment", "transaction", "ledger", "account", "compliance", "audit",
		"portfolio", "settlement", "invoice", "reconciliation", "fraud",
	},
	"ecommerce": {
		"cart", "checkout", "catalog", "order", "fulfillment", "product",
		"promotion", "refund", "storefront", "payment", "shipping",
	},
	"education": {
		"student", "course", "curriculum", "enrollment", "assessment",
		"instructor", "grade", "learning", "lesson", "certification",
	},
	"manufacturing": {
		"production", "assembly", "quality", "plant", "machine", "defect",
		"batch", "maintenance", "supply", "throughput", "downtime",
	},
}

// indicatorsForDomain resolves the indicator vocabulary for a domain string.
func indicatorsForDomain(domain string) []string {
	key := strings.ToLower(strings.TrimSpace(domain))
	if terms, ok := domainIndicators[key]; ok {
		return terms
	}

	// Unknown domain: the domain phrase's own words become the indicators.
	var terms []string
	for _, w := range strings.Fields(key) {
		if len(w) > 3 {
			terms = append(terms, w)
		}
	}
	return terms
}
