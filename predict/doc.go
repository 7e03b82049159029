// Package predict holds the prediction request model, its validation rules
// and the response shapes shared by every gateway path.
//
// ValidateSingle and ValidateBatch turn raw query parameters or a JSON body
// into a Request, reporting the first violated rule with that field's fixed
// message. Model aliases (phs, trf) are resolved to canonical names.
//
// Every response is an Envelope {data, status, message?}. A failed backend
// call is a *BackendError; in aggregate mode it is stored under the
// backend's key of an AggregateResult beside the successful results.
package predict
