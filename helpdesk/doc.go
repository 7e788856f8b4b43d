// Package helpdesk provides a client for the ServiceDesk Plus v3 REST API.
//
// The package maps the API's JSON documents to Go types and shapes every call
// the way the upstream expects it: list filters and create/update bodies are
// sent as a JSON document in the input_data parameter, nested under a single
// envelope key such as list_info, request or note.
//
// # Architecture
//
//   - Client: the blocking facade, one method per API operation
//   - AsyncClient: the same operations returning a Future per call
//   - Transport: the HTTP round trip abstraction; HTTPTransport is backed by net/http
//   - Field: optional payload values that tell unset apart from null
//   - Errors: APIError for non-2xx responses, ValidationError for local checks
//
// # Usage
//
//	transport, err := helpdesk.NewHTTPTransport(
//		"https://helpdesk.example.com",
//		helpdesk.WithAPIKey(helpdesk.DefaultAuthHeader, "your-api-key"),
//		helpdesk.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := helpdesk.NewClient(transport, helpdesk.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ticket, err := client.GetTicket(ctx, 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if ticket == nil {
//		// no such ticket
//	}
//
// Partial updates only send the fields that were set:
//
//	_, err = client.UpdateTicket(ctx, 42, helpdesk.TicketUpdate{
//		Subject: helpdesk.Set("VPN is down again"),
//	})
//
// # Error Handling
//
// A 404 from GetTicket, GetTemplate, GetResolution or Download is not an
// error: the call returns nil and a nil error. Every other non-2xx status is
// returned as an *APIError:
//
//	if apiErr, ok := helpdesk.AsAPIError(err); ok {
//		if apiErr.IsUnauthorized() {
//			// Handle auth failure
//		}
//	}
//
// Network failures are returned exactly as the Transport reported them.
package helpdesk
