// Package models defines the core domain models for the border-trade platform.
//
// # Models
//
//   - Order: A bulk import order placed by an enterprise
//   - SubOrder: One committed allocation line of an order, bound to a resident
//   - Resident: A registered border resident who lends trade quota to orders
//   - Group: A mutual-aid group of residents managed by a leader
//   - User: A dashboard account (agent, enterprise or resident role)
//   - ProfitConfig: How an order's service fee is shared out
//
// # Design Principles
//
//  1. **Decimal money**: All currency amounts are decimal.Decimal, never float64
//  2. **Derived eligibility**: Whether a resident may take an allocation is computed
//     from stored state (see calculator.CheckEligibility), never stored itself
//  3. **Avoid circular references**: Use ID strings instead of pointers for relationships
//  4. **Stable wire names**: JSON tags match the dashboard's camelCase field names
package models
