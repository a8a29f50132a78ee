package api

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		pool := api.Group("/pool")
		{
			pool.GET("/tokens", s.handleGetTokens)
			pool.GET("/reserves", s.handleGetReserves)
			pool.GET("/shares/:address", s.handleGetShares)
			pool.GET("/price", s.handleGetPrice)
			pool.GET("/quote", s.handleQuote)
			pool.POST("/init", s.handleInit)
			pool.POST("/add-liquidity", s.handleAddLiquidity)
			pool.POST("/remove-liquidity", s.handleRemoveLiquidity)
		}

		swap := api.Group("/swap")
		{
			swap.POST("/token0-to-1", s.handleToken0To1)
			swap.POST("/token1-to-0", s.handleToken1To0)
		}

		tokens := api.Group("/tokens/:token")
		{
			tokens.GET("/balance/:address", s.handleGetBalance)
			tokens.GET("/allowance/:owner/:spender", s.handleGetAllowance)
			tokens.POST("/transfer", s.handleTransfer)
			tokens.POST("/approve", s.handleApprove)
		}
	}
}
