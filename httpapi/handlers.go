package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/flowcraft/engine/logger"
	"github.com/flowcraft/engine/model"
)

type createWorkflowRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, model.ConfigError{Message: "invalid request body"})
		return
	}
	defer r.Body.Close()

	wf, err := s.container.Graphs.CreateWorkflow(req.Name, ownerOf(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, wf)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	graph, err := s.container.Graphs.LoadGraph(id, ownerOf(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, graph)
}

func (s *Server) handleSaveWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req model.SaveGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, model.ConfigError{Message: "invalid request body"})
		return
	}
	defer r.Body.Close()
	req.Id = id

	wf, err := s.container.Graphs.SaveGraph(req, ownerOf(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, wf)
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.container.Graphs.DeleteWorkflow(id, ownerOf(r)); err != nil {
		respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type executeRequest struct {
	InitialData map[string]any `json:"initialData,omitempty"`
}

// handleExecute publishes a trigger event and returns immediately with
// the workflow id and an "accepted" status (the execution id is not
// known yet), per the specification's async "publish and return"
// contract - the actual drive happens on a worker-pool goroutine. This
// request is driven on whichever node received it; request routing to
// the workflow's cluster-assigned owner is not implemented (see
// DESIGN.md), so a clustered deployment needs a load balancer or client
// that is otherwise indifferent to which node handles a given
// workflow.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req executeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, model.ConfigError{Message: "invalid request body"})
			return
		}
		defer r.Body.Close()
	}

	ownerId := ownerOf(r)
	go func() {
		if _, err := s.container.Pool.Submit(id, ownerId, req.InitialData); err != nil {
			logger.Error("triggered execution failed", zap.String("workflowId", id), zap.Error(err))
		}
	}()
	respondWithJSON(w, http.StatusAccepted, map[string]string{"workflowId": id, "status": "accepted"})
}

// handleEvent delivers a WAIT resume event. A WAIT suspends one
// execution, not a whole workflow, so {id} here names the execution id
// rather than the workflow id the other /workflows/{id} routes use.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	executionId := vars["id"]
	event := vars["event"]

	var payload map[string]any
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondWithError(w, model.ConfigError{Message: "invalid request body"})
			return
		}
		defer r.Body.Close()
	}

	callerOwnerId := ownerOf(r)
	if parked, err := s.container.Executions.Load(r.Context(), executionId); err == nil &&
		(callerOwnerId == "" || parked.OwnerId == callerOwnerId) &&
		parked.State == model.ExecutionWaitingEvent && parked.WaitEvent != event {
		respondWithError(w, model.ConfigError{Message: "execution " + executionId + " is waiting for event " + parked.WaitEvent + ", not " + event})
		return
	}

	ec, err := s.container.Runner.ResumeWithEvent(r.Context(), executionId, callerOwnerId, payload)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"event": event, "state": ec.State})
}
