/*
MIT License

Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package query turns command-line filters into Hookdeck list parameters.
//
// Build validates every filter before any request is made:
//   - --status must name an event status, in any case
//   - --rate-limit must be a positive number and --max-retries a non-negative integer
//   - --last-days cannot be combined with the explicit --created-* options
//   - explicit dates must parse as calendar timestamps
//
// Date filters become created_at[op] parameters, combined with AND:
//
//	--created-after  created_at[gt]
//	--created-before created_at[lt]
//	--created-from   created_at[gte]
//	--created-until  created_at[lte]
//	--created-any    created_at[any] (no value)
//	--last-days N    created_at[gte] = now - N days
package query
