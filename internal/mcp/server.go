package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"schedrisk-mcp/internal/config"
	"schedrisk-mcp/internal/schedule"
	"schedrisk-mcp/internal/simulation"
)

// JSONRPCRequest represents a standard MCP/JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a standard MCP/JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Server holds the state for the MCP server.
type Server struct {
	cfg    *config.AppConfig
	store  *schedule.Store
	engine *simulation.Engine

	in  io.Reader
	out io.Writer
}

// NewServer creates a new MCP server over the given store and engine.
func NewServer(cfg *config.AppConfig, store *schedule.Store, engine *simulation.Engine) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		engine: engine,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// Start runs the JSON-RPC loop over Stdio until EOF.
func (s *Server) Start() error {
	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal request")
			continue
		}

		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req JSONRPCRequest) {
	var result interface{}
	var errRes interface{}

	switch req.Method {
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]interface{}{},
			"serverInfo": map[string]interface{}{
				"name":    "schedrisk-mcp",
				"version": "0.1.0",
			},
		}
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, errRes = s.callTool(req.Params)
	default:
		errRes = map[string]interface{}{
			"code":    -32601,
			"message": fmt.Sprintf("Method %s not found", req.Method),
		}
	}

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   errRes,
	}

	out, _ := json.Marshal(resp)
	fmt.Fprintf(s.out, "%s\n", out)
}

func (s *Server) callTool(params json.RawMessage) (interface{}, interface{}) {
	var call struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, map[string]interface{}{"code": -32602, "message": "Invalid params"}
	}

	var data interface{}
	var err error

	switch call.Name {
	case "run_simulation":
		data, err = s.handleRunSimulation(call.Arguments)
	case "get_schedule":
		data, err = s.handleGetSchedule(asString(call.Arguments["schedule_id"]))
	case "list_schedules":
		data, err = s.handleListSchedules()
	case "get_critical_path":
		data, err = s.handleGetCriticalPath(asString(call.Arguments["schedule_id"]))
	default:
		return nil, map[string]interface{}{"code": -32601, "message": "Tool not found"}
	}

	if err != nil {
		return nil, map[string]interface{}{"code": -32000, "message": err.Error()}
	}

	return map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{
				"type": "text",
				"text": s.formatResult(data),
			},
		},
	}, nil
}

func (s *Server) formatResult(data interface{}) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

func asString(v interface{}) string {
	str, _ := v.(string)
	return str
}
