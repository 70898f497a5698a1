package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Stocksim API
// @version         0.1.0
// @description     Trading ledger, portfolio valuation, and leaderboards for a paper trading simulator.
// @host            localhost:8080
// @BasePath        /
// @schemes         http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
