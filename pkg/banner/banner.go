package banner

import (
	"fmt"

	"threadloom/pkg/config"
)

const banner = `
████████╗██╗  ██╗██████╗ ███████╗ █████╗ ██████╗ ██╗      ██████╗  ██████╗ ███╗   ███╗
╚══██╔══╝██║  ██║██╔══██╗██╔════╝██╔══██╗██╔══██╗██║     ██╔═══██╗██╔═══██╗████╗ ████║
   ██║   ███████║██████╔╝█████╗  ███████║██║  ██║██║     ██║   ██║██║   ██║██╔████╔██║
   ██║   ██╔══██║██╔══██╗██╔══╝  ██╔══██║██║  ██║██║     ██║   ██║██║   ██║██║╚██╔╝██║
   ██║   ██║  ██║██║  ██║███████╗██║  ██║██████╔╝███████╗╚██████╔╝╚██████╔╝██║ ╚═╝ ██║
   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═════╝ ╚══════╝ ╚═════╝  ╚═════╝ ╚═╝     ╚═╝
`

// PrintWithEff prints the banner using an EffectiveConfigResult which
// provides runtime context (addr, proxy, journal, config source).
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("Proxy:    %s\n", eff.ProxyURL)
	fmt.Printf("Journal:  %s\n", eff.JournalPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", eff.Source)

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /v1/threads/{threadId}/stream - SSE thread stream (cursor, pollIntervalMs, includeBodies)")
	fmt.Println("POST /v1/kickoffs - Compose and deliver kickoff messages")
	fmt.Println("POST /v1/kickoffs/preview - Compose without delivering")
	fmt.Println("POST /v1/deltas/lint - Parse and validate a delta reply")
	fmt.Println("GET  /v1/admin/journal?threadId=<id> - Journal read-back (admin)")

	fmt.Println("\n== Examples ===================================================")
	fmt.Println("curl -N 'http://<host>:<port>/v1/threads/t1/stream?cursor=0'")
	fmt.Println(`curl -X POST 'http://<host>:<port>/v1/kickoffs/preview' -d '{"thread_id":"t1","research_question":"...","recipients":["Codex"]}'`)

	fmt.Println("\n== Production? =================================================")
	be, fe, ak := 0, 0, 0
	if eff.Config != nil {
		be = len(eff.Config.Security.APIKeys.Backend)
		fe = len(eff.Config.Security.APIKeys.Frontend)
		ak = len(eff.Config.Security.APIKeys.Admin)
	}
	if be > 0 {
		fmt.Printf("- Backend API keys: OK (%d)\n", be)
	} else {
		fmt.Println("- Backend API keys: MISSING (required for backend services)")
	}
	if fe > 0 {
		fmt.Printf("- Frontend API keys: OK (%d)\n", fe)
	} else {
		fmt.Println("- Frontend API keys: MISSING (required for client access)")
	}
	if ak > 0 {
		fmt.Printf("- Admin API keys: OK (%d)\n", ak)
	} else {
		fmt.Println("- Admin API keys: MISSING (required for admin tooling)")
	}
	if eff.ProxyURL == "" {
		fmt.Println("- Proxy URL: not set (use --proxy or THREADLOOM_PROXY_URL)")
	}
}
