// Package wellets provides the types and the stateless engines behind the
// Wellets personal finance tracker: currencies, wallets, transactions and
// weighted portfolios of wallets.
//
// The core functionalities include:
//   - Currency Conversion: every currency carries a dollar rate, the amount of
//     that currency worth one reference unit. Amounts are converted between
//     currencies through that common reference.
//   - Currency Catalog: an immutable snapshot of the known currencies, passed
//     explicitly to whatever needs to convert amounts.
//   - Portfolio Tree: portfolios group wallets and other portfolios with a
//     target weight relative to their siblings. The tree is stored as a flat
//     table of nodes referencing each other by id.
//   - Allocation Engine: given a set of sibling portfolios and a base
//     currency, it computes the target and actual value of each portfolio and
//     the buy or sell action that brings it back to its target weight.
//   - Data Persistence: datasets are stored as human-readable JSONL files.
//
// The engines never perform I/O. Fetching currencies, wallets and portfolios
// is the business of the caller, see the `wellets` command line tool.
package wellets
