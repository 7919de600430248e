package typescript

// envelopeTemplate mirrors bridge.Response and bridge.Error.
const envelopeTemplate = `export interface ApiError {
	code: string;
	message: string;
	details?: Record<string, any>;
}

export interface ApiResponse<T> {
	success: boolean;
	data?: T;
	error?: ApiError;
}
`

// EnvelopePath returns the artifact path of the shared response envelope.
func (e *Emitter) EnvelopePath() string {
	return InterfacesDir + "/api-response.interface." + e.config.Extension
}

// EmitEnvelope renders the shared response envelope. Its content is static.
func (e *Emitter) EmitEnvelope() File {
	return File{Path: e.EnvelopePath(), Content: []byte(indentTabs(envelopeTemplate, e.indent))}
}
