package main

// @title POS Service API
// @version 1.0
// @description Point of sale ledger for a single store: catalog, cash and installment sales, reports and backups.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

// @tag.name Auth
// @tag.description Terminal login and session endpoints

// @tag.name Catalog
// @tag.description Products and categories

// @tag.name Sales
// @tag.description Invoices and the sales ledger

// @tag.name Installments
// @tag.description Installment contracts and payments

// @tag.name Reports
// @tag.description Sales, inventory, installment and daily reports
