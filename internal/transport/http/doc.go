// Package http implements the JSON API handlers of the careerlens service.
// Handlers stay thin: they parse and validate the request, call the
// service layer and render the result.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → AnalysisService
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Routes
//
//	/api/analysis/{workspace}/{view}            AnalysisHandler
//	/api/views                                  ViewsHandler
//	/api/health, /api/version                   HealthHandler
//
// # Error Handling
//
// Every failure goes through errors.ErrorHandler and is written as an
// RFC 7807 problem document:
//
//	{
//	    "type": "/errors/upload/missing-columns",
//	    "title": "Missing Required Columns",
//	    "status": 422,
//	    "detail": "student upload is missing required columns: Dept",
//	    "instance": "/api/analysis/fall/student/upload",
//	    "missing": ["Dept"]
//	}
//
// Downloads (exports and templates) are rendered into memory before the
// first byte is written so a failure can still produce a problem response.
package http
