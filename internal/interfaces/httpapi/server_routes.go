package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/pools/{poolID}", handler.GetPool)
	mux.HandleFunc("GET /v1/pools/{poolID}/matches", handler.ListMatchesByPool)
	mux.HandleFunc("GET /v1/pools/{poolID}/ranking", handler.GetRanking)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/pools", RequireAuth(verifier, http.HandlerFunc(handler.CreatePool)))
	mux.Handle("PUT /v1/pools/{poolID}/rules", RequireAuth(verifier, http.HandlerFunc(handler.UpdatePoolRules)))
	mux.Handle("POST /v1/pools/{poolID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinPool)))
	mux.Handle("PUT /v1/pools/{poolID}/participants/{participantID}/status", RequireAuth(verifier, http.HandlerFunc(handler.UpdateParticipantStatus)))
	mux.Handle("DELETE /v1/pools/{poolID}/participants/{participantID}", RequireAuth(verifier, http.HandlerFunc(handler.RemoveParticipant)))
	mux.Handle("POST /v1/pools/{poolID}/matches", RequireAuth(verifier, http.HandlerFunc(handler.CreateMatch)))
	mux.Handle("PUT /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateMatch)))
	mux.Handle("PUT /v1/pools/{poolID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPrediction)))
	mux.Handle("GET /v1/pools/{poolID}/users/{userID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.ListUserPredictions)))
}
