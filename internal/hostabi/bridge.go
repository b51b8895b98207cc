/*
 * Copyright 2026 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//go:build ffi

package hostabi

/*
#include <stdlib.h>
#include "hostapi.h"

// Entry points resolved from the host's API getter. cgo cannot call a C
// function pointer, so every call goes through a static wrapper below.
static int (*hm_get_api)(const char *, void *);

static int (*hm_set_module_attribs)(HostModuleCtx *, const char *, int, int);
static int (*hm_create_command)(HostModuleCtx *, const char *, HostModuleCmdFunc,
                                const char *, int, int, int);
static void (*hm_log)(HostModuleCtx *, const char *, const char *, ...);
static int (*hm_reply_error)(HostModuleCtx *, const char *);
static int (*hm_reply_simple_string)(HostModuleCtx *, const char *);
static int (*hm_reply_longlong)(HostModuleCtx *, long long);
static int (*hm_reply_string_buffer)(HostModuleCtx *, const char *, size_t);
static int (*hm_reply_null)(HostModuleCtx *);
static HostModuleString *(*hm_create_string)(HostModuleCtx *, const char *, size_t);
static void (*hm_free_string)(HostModuleCtx *, HostModuleString *);
static const char *(*hm_string_ptr_len)(const HostModuleString *, size_t *);
static HostModuleCtx *(*hm_get_thread_safe_context)(void *);
static void (*hm_free_thread_safe_context)(HostModuleCtx *);
static void (*hm_thread_safe_context_lock)(HostModuleCtx *);
static void (*hm_thread_safe_context_unlock)(HostModuleCtx *);
static void (*hm_register_cluster_message_receiver)(HostModuleCtx *, uint8_t,
                                                    HostModuleClusterMessageFunc);
static int (*hm_send_cluster_message)(HostModuleCtx *, const char *, uint8_t,
                                      const char *, uint32_t);
static const char *(*hm_get_my_cluster_id)(void);
static HostModuleCommandFilter *(*hm_register_command_filter)(HostModuleCtx *,
                                                              HostModuleCommandFilterFunc, int);
static int (*hm_unregister_command_filter)(HostModuleCtx *, HostModuleCommandFilter *);
static int (*hm_command_filter_args_count)(HostModuleCommandFilterCtx *);
static HostModuleString *(*hm_command_filter_arg_get)(HostModuleCommandFilterCtx *, int);
static int (*hm_command_filter_arg_insert)(HostModuleCommandFilterCtx *, int, HostModuleString *);
static int (*hm_command_filter_arg_replace)(HostModuleCommandFilterCtx *, int, HostModuleString *);
static int (*hm_command_filter_arg_delete)(HostModuleCommandFilterCtx *, int);
static unsigned long long (*hm_command_filter_get_client_id)(HostModuleCommandFilterCtx *);

#define HM_RESOLVE(name, target)                          \
	if (hm_get_api(name, (void *)&target) != HOSTMODULE_OK) \
		return HOSTMODULE_ERR;

// hostmod_resolve_api pulls the API getter out of the context's first slot
// and resolves every entry point this module uses. Optional entry points
// resolve best effort and stay NULL when the host predates them.
static int hostmod_resolve_api(HostModuleCtx *ctx) {
	hm_get_api = (int (*)(const char *, void *))(*(void **)ctx);
	if (hm_get_api == NULL) return HOSTMODULE_ERR;
	HM_RESOLVE("HostModule_SetModuleAttribs", hm_set_module_attribs);
	HM_RESOLVE("HostModule_CreateCommand", hm_create_command);
	HM_RESOLVE("HostModule_Log", hm_log);
	HM_RESOLVE("HostModule_ReplyWithError", hm_reply_error);
	HM_RESOLVE("HostModule_ReplyWithSimpleString", hm_reply_simple_string);
	HM_RESOLVE("HostModule_ReplyWithLongLong", hm_reply_longlong);
	HM_RESOLVE("HostModule_ReplyWithStringBuffer", hm_reply_string_buffer);
	HM_RESOLVE("HostModule_ReplyWithNull", hm_reply_null);
	HM_RESOLVE("HostModule_CreateString", hm_create_string);
	HM_RESOLVE("HostModule_FreeString", hm_free_string);
	HM_RESOLVE("HostModule_StringPtrLen", hm_string_ptr_len);
	HM_RESOLVE("HostModule_GetThreadSafeContext", hm_get_thread_safe_context);
	HM_RESOLVE("HostModule_FreeThreadSafeContext", hm_free_thread_safe_context);
	HM_RESOLVE("HostModule_ThreadSafeContextLock", hm_thread_safe_context_lock);
	HM_RESOLVE("HostModule_ThreadSafeContextUnlock", hm_thread_safe_context_unlock);
	HM_RESOLVE("HostModule_RegisterClusterMessageReceiver", hm_register_cluster_message_receiver);
	HM_RESOLVE("HostModule_SendClusterMessage", hm_send_cluster_message);
	HM_RESOLVE("HostModule_RegisterCommandFilter", hm_register_command_filter);
	HM_RESOLVE("HostModule_UnregisterCommandFilter", hm_unregister_command_filter);
	HM_RESOLVE("HostModule_CommandFilterArgsCount", hm_command_filter_args_count);
	HM_RESOLVE("HostModule_CommandFilterArgGet", hm_command_filter_arg_get);
	HM_RESOLVE("HostModule_CommandFilterArgInsert", hm_command_filter_arg_insert);
	HM_RESOLVE("HostModule_CommandFilterArgReplace", hm_command_filter_arg_replace);
	HM_RESOLVE("HostModule_CommandFilterArgDelete", hm_command_filter_arg_delete);
	HM_RESOLVE("HostModule_CommandFilterGetClientId", hm_command_filter_get_client_id);
	hm_get_api("HostModule_GetMyClusterID", (void *)&hm_get_my_cluster_id);
	return HOSTMODULE_OK;
}

// Trampolines. The host's callbacks have no user data slot, so inbound
// cluster messages share one trampoline keyed by message type on the Go
// side, while command filters get one generated trampoline per registry
// slot so each registration dispatches exactly to its own callback.

extern void goHostClusterMessage(HostModuleCtx *ctx, char *sender_id, uint8_t type,
                                 unsigned char *payload, uint32_t len);
extern void goHostCommandFilter(int slot, HostModuleCommandFilterCtx *fctx);
extern int goHostCommand(HostModuleCtx *ctx, HostModuleString **argv, int argc);

static void hostmod_cluster_trampoline(HostModuleCtx *ctx, const char *sender_id,
                                       uint8_t type, const unsigned char *payload,
                                       uint32_t len) {
	goHostClusterMessage(ctx, (char *)sender_id, type, (unsigned char *)payload, len);
}

static int hostmod_command_trampoline(HostModuleCtx *ctx, HostModuleString **argv, int argc) {
	return goHostCommand(ctx, argv, argc);
}

// Must match FilterSlots in slots.go.
#define HOSTMOD_FILTER_SLOTS 32

#define HM_FILTER_TRAMP(n)                                                  \
	static void hostmod_filter_tramp_##n(HostModuleCommandFilterCtx *fctx) {  \
		goHostCommandFilter(n, fctx);                                           \
	}

HM_FILTER_TRAMP(0)
HM_FILTER_TRAMP(1)
HM_FILTER_TRAMP(2)
HM_FILTER_TRAMP(3)
HM_FILTER_TRAMP(4)
HM_FILTER_TRAMP(5)
HM_FILTER_TRAMP(6)
HM_FILTER_TRAMP(7)
HM_FILTER_TRAMP(8)
HM_FILTER_TRAMP(9)
HM_FILTER_TRAMP(10)
HM_FILTER_TRAMP(11)
HM_FILTER_TRAMP(12)
HM_FILTER_TRAMP(13)
HM_FILTER_TRAMP(14)
HM_FILTER_TRAMP(15)
HM_FILTER_TRAMP(16)
HM_FILTER_TRAMP(17)
HM_FILTER_TRAMP(18)
HM_FILTER_TRAMP(19)
HM_FILTER_TRAMP(20)
HM_FILTER_TRAMP(21)
HM_FILTER_TRAMP(22)
HM_FILTER_TRAMP(23)
HM_FILTER_TRAMP(24)
HM_FILTER_TRAMP(25)
HM_FILTER_TRAMP(26)
HM_FILTER_TRAMP(27)
HM_FILTER_TRAMP(28)
HM_FILTER_TRAMP(29)
HM_FILTER_TRAMP(30)
HM_FILTER_TRAMP(31)

static HostModuleCommandFilterFunc hostmod_filter_tramps[HOSTMOD_FILTER_SLOTS] = {
	hostmod_filter_tramp_0,  hostmod_filter_tramp_1,  hostmod_filter_tramp_2,
	hostmod_filter_tramp_3,  hostmod_filter_tramp_4,  hostmod_filter_tramp_5,
	hostmod_filter_tramp_6,  hostmod_filter_tramp_7,  hostmod_filter_tramp_8,
	hostmod_filter_tramp_9,  hostmod_filter_tramp_10, hostmod_filter_tramp_11,
	hostmod_filter_tramp_12, hostmod_filter_tramp_13, hostmod_filter_tramp_14,
	hostmod_filter_tramp_15, hostmod_filter_tramp_16, hostmod_filter_tramp_17,
	hostmod_filter_tramp_18, hostmod_filter_tramp_19, hostmod_filter_tramp_20,
	hostmod_filter_tramp_21, hostmod_filter_tramp_22, hostmod_filter_tramp_23,
	hostmod_filter_tramp_24, hostmod_filter_tramp_25, hostmod_filter_tramp_26,
	hostmod_filter_tramp_27, hostmod_filter_tramp_28, hostmod_filter_tramp_29,
	hostmod_filter_tramp_30, hostmod_filter_tramp_31,
};

// Static wrappers callable from Go.

static int hostmod_set_module_attribs(HostModuleCtx *ctx, const char *name, int ver, int apiver) {
	return hm_set_module_attribs(ctx, name, ver, apiver);
}

static int hostmod_create_command(HostModuleCtx *ctx, const char *name, const char *flags,
                                  int firstkey, int lastkey, int keystep) {
	return hm_create_command(ctx, name, hostmod_command_trampoline, flags,
	                         firstkey, lastkey, keystep);
}

static void hostmod_log(HostModuleCtx *ctx, const char *level, const char *msg) {
	hm_log(ctx, level, "%s", msg);
}

static int hostmod_reply_error(HostModuleCtx *ctx, const char *msg) {
	return hm_reply_error(ctx, msg);
}

static int hostmod_reply_simple_string(HostModuleCtx *ctx, const char *msg) {
	return hm_reply_simple_string(ctx, msg);
}

static int hostmod_reply_longlong(HostModuleCtx *ctx, long long n) {
	return hm_reply_longlong(ctx, n);
}

static int hostmod_reply_string_buffer(HostModuleCtx *ctx, const char *buf, size_t len) {
	if (buf == NULL) buf = "";
	return hm_reply_string_buffer(ctx, buf, len);
}

static int hostmod_reply_null(HostModuleCtx *ctx) {
	return hm_reply_null(ctx);
}

static const char *hostmod_string_ptr_len(const HostModuleString *s, size_t *len) {
	return hm_string_ptr_len(s, len);
}

static HostModuleCtx *hostmod_get_thread_safe_context(void) {
	return hm_get_thread_safe_context(NULL);
}

static void hostmod_free_thread_safe_context(HostModuleCtx *ctx) {
	hm_free_thread_safe_context(ctx);
}

static void hostmod_thread_safe_context_lock(HostModuleCtx *ctx) {
	hm_thread_safe_context_lock(ctx);
}

static void hostmod_thread_safe_context_unlock(HostModuleCtx *ctx) {
	hm_thread_safe_context_unlock(ctx);
}

static void hostmod_register_cluster_message_receiver(HostModuleCtx *ctx, uint8_t type) {
	hm_register_cluster_message_receiver(ctx, type, hostmod_cluster_trampoline);
}

static int hostmod_send_cluster_message(HostModuleCtx *ctx, const char *target, uint8_t type,
                                        const char *msg, uint32_t len) {
	if (msg == NULL) msg = "";
	return hm_send_cluster_message(ctx, target, type, msg, len);
}

static const char *hostmod_get_my_cluster_id(void) {
	if (hm_get_my_cluster_id == NULL) return NULL;
	return hm_get_my_cluster_id();
}

static HostModuleCommandFilter *hostmod_register_command_filter(HostModuleCtx *ctx, int slot,
                                                                int flags) {
	if (slot < 0 || slot >= HOSTMOD_FILTER_SLOTS) return NULL;
	return hm_register_command_filter(ctx, hostmod_filter_tramps[slot], flags);
}

static int hostmod_unregister_command_filter(HostModuleCtx *ctx, HostModuleCommandFilter *f) {
	return hm_unregister_command_filter(ctx, f);
}

static int hostmod_command_filter_args_count(HostModuleCommandFilterCtx *fctx) {
	return hm_command_filter_args_count(fctx);
}

static const char *hostmod_command_filter_arg_get(HostModuleCommandFilterCtx *fctx, int pos,
                                                  size_t *len) {
	HostModuleString *s = hm_command_filter_arg_get(fctx, pos);
	if (s == NULL) return NULL;
	return hm_string_ptr_len(s, len);
}

static int hostmod_command_filter_arg_insert(HostModuleCommandFilterCtx *fctx, int pos,
                                             const char *buf, size_t len) {
	HostModuleString *s;
	int rc;
	if (buf == NULL) buf = "";
	s = hm_create_string(NULL, buf, len);
	if (s == NULL) return HOSTMODULE_ERR;
	rc = hm_command_filter_arg_insert(fctx, pos, s);
	if (rc != HOSTMODULE_OK) hm_free_string(NULL, s);
	return rc;
}

static int hostmod_command_filter_arg_replace(HostModuleCommandFilterCtx *fctx, int pos,
                                              const char *buf, size_t len) {
	HostModuleString *s;
	int rc;
	if (buf == NULL) buf = "";
	s = hm_create_string(NULL, buf, len);
	if (s == NULL) return HOSTMODULE_ERR;
	rc = hm_command_filter_arg_replace(fctx, pos, s);
	if (rc != HOSTMODULE_OK) hm_free_string(NULL, s);
	return rc;
}

static int hostmod_command_filter_arg_delete(HostModuleCommandFilterCtx *fctx, int pos) {
	return hm_command_filter_arg_delete(fctx, pos);
}

static unsigned long long hostmod_command_filter_get_client_id(HostModuleCommandFilterCtx *fctx) {
	return hm_command_filter_get_client_id(fctx);
}
*/
import "C"

import "unsafe"

// resolveHostAPI fills the C function pointer table from the context handed
// to HostModule_OnLoad.
func resolveHostAPI(ctx *C.HostModuleCtx) Status {
	return Status(C.hostmod_resolve_api(ctx))
}

// goStringArgs copies a host string vector into Go byte slices.
func goStringArgs(argv **C.HostModuleString, argc C.int) [][]byte {
	if argv == nil || argc <= 0 {
		return nil
	}
	args := make([][]byte, 0, int(argc))
	for _, s := range unsafe.Slice(argv, int(argc)) {
		var l C.size_t
		p := C.hostmod_string_ptr_len(s, &l)
		if p == nil {
			args = append(args, []byte{})
			continue
		}
		args = append(args, C.GoBytes(unsafe.Pointer(p), C.int(l)))
	}
	return args
}

// cHost is the cgo-backed host binding installed by HostModule_OnLoad.
type cHost struct{}

func (cHost) InitModule(ctx unsafe.Pointer, name string, version int) Status {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return Status(C.hostmod_set_module_attribs((*C.HostModuleCtx)(ctx), cname,
		C.int(version), C.HOSTMODULE_APIVER_1))
}

func (cHost) CreateCommand(ctx unsafe.Pointer, name, flags string, firstKey, lastKey, keyStep int) Status {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	cflags := C.CString(flags)
	defer C.free(unsafe.Pointer(cflags))
	return Status(C.hostmod_create_command((*C.HostModuleCtx)(ctx), cname, cflags,
		C.int(firstKey), C.int(lastKey), C.int(keyStep)))
}

func (cHost) ReplyError(ctx unsafe.Pointer, msg string) Status {
	cmsg := C.CString(msg)
	defer C.free(unsafe.Pointer(cmsg))
	return Status(C.hostmod_reply_error((*C.HostModuleCtx)(ctx), cmsg))
}

func (cHost) ReplySimpleString(ctx unsafe.Pointer, msg string) Status {
	cmsg := C.CString(msg)
	defer C.free(unsafe.Pointer(cmsg))
	return Status(C.hostmod_reply_simple_string((*C.HostModuleCtx)(ctx), cmsg))
}

func (cHost) ReplyInt64(ctx unsafe.Pointer, n int64) Status {
	return Status(C.hostmod_reply_longlong((*C.HostModuleCtx)(ctx), C.longlong(n)))
}

func (cHost) ReplyBulk(ctx unsafe.Pointer, b []byte) Status {
	var p *C.char
	if len(b) > 0 {
		p = (*C.char)(unsafe.Pointer(&b[0]))
	}
	return Status(C.hostmod_reply_string_buffer((*C.HostModuleCtx)(ctx), p, C.size_t(len(b))))
}

func (cHost) ReplyNull(ctx unsafe.Pointer) Status {
	return Status(C.hostmod_reply_null((*C.HostModuleCtx)(ctx)))
}

func (cHost) Log(ctx unsafe.Pointer, level, msg string) {
	clevel := C.CString(level)
	defer C.free(unsafe.Pointer(clevel))
	cmsg := C.CString(msg)
	defer C.free(unsafe.Pointer(cmsg))
	C.hostmod_log((*C.HostModuleCtx)(ctx), clevel, cmsg)
}

func (cHost) GetThreadSafeContext() unsafe.Pointer {
	return unsafe.Pointer(C.hostmod_get_thread_safe_context())
}

func (cHost) FreeThreadSafeContext(ctx unsafe.Pointer) {
	C.hostmod_free_thread_safe_context((*C.HostModuleCtx)(ctx))
}

func (cHost) ThreadSafeContextLock(ctx unsafe.Pointer) {
	C.hostmod_thread_safe_context_lock((*C.HostModuleCtx)(ctx))
}

func (cHost) ThreadSafeContextUnlock(ctx unsafe.Pointer) {
	C.hostmod_thread_safe_context_unlock((*C.HostModuleCtx)(ctx))
}

func (cHost) RegisterClusterReceiver(ctx unsafe.Pointer, msgType uint8) {
	C.hostmod_register_cluster_message_receiver((*C.HostModuleCtx)(ctx), C.uint8_t(msgType))
}

func (cHost) SendClusterMessage(ctx unsafe.Pointer, target string, msgType uint8, payload []byte) Status {
	var ctarget *C.char
	if target != "" {
		ctarget = C.CString(target)
		defer C.free(unsafe.Pointer(ctarget))
	}
	var p *C.char
	if len(payload) > 0 {
		p = (*C.char)(unsafe.Pointer(&payload[0]))
	}
	return Status(C.hostmod_send_cluster_message((*C.HostModuleCtx)(ctx), ctarget,
		C.uint8_t(msgType), p, C.uint32_t(len(payload))))
}

func (cHost) MyClusterID(unsafe.Pointer) string {
	p := C.hostmod_get_my_cluster_id()
	if p == nil {
		return ""
	}
	return C.GoString(p)
}

func (cHost) RegisterCommandFilter(ctx unsafe.Pointer, slot int, flags int) unsafe.Pointer {
	return unsafe.Pointer(C.hostmod_register_command_filter((*C.HostModuleCtx)(ctx),
		C.int(slot), C.int(flags)))
}

func (cHost) UnregisterCommandFilter(ctx unsafe.Pointer, handle unsafe.Pointer) Status {
	return Status(C.hostmod_unregister_command_filter((*C.HostModuleCtx)(ctx),
		(*C.HostModuleCommandFilter)(handle)))
}

func (cHost) FilterArgCount(fctx unsafe.Pointer) int {
	return int(C.hostmod_command_filter_args_count((*C.HostModuleCommandFilterCtx)(fctx)))
}

func (cHost) FilterArg(fctx unsafe.Pointer, pos int) ([]byte, bool) {
	var l C.size_t
	p := C.hostmod_command_filter_arg_get((*C.HostModuleCommandFilterCtx)(fctx), C.int(pos), &l)
	if p == nil {
		return nil, false
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(l)), true
}

func (cHost) FilterArgInsert(fctx unsafe.Pointer, pos int, arg []byte) Status {
	var p *C.char
	if len(arg) > 0 {
		p = (*C.char)(unsafe.Pointer(&arg[0]))
	}
	return Status(C.hostmod_command_filter_arg_insert((*C.HostModuleCommandFilterCtx)(fctx),
		C.int(pos), p, C.size_t(len(arg))))
}

func (cHost) FilterArgReplace(fctx unsafe.Pointer, pos int, arg []byte) Status {
	var p *C.char
	if len(arg) > 0 {
		p = (*C.char)(unsafe.Pointer(&arg[0]))
	}
	return Status(C.hostmod_command_filter_arg_replace((*C.HostModuleCommandFilterCtx)(fctx),
		C.int(pos), p, C.size_t(len(arg))))
}

func (cHost) FilterArgDelete(fctx unsafe.Pointer, pos int) Status {
	return Status(C.hostmod_command_filter_arg_delete((*C.HostModuleCommandFilterCtx)(fctx),
		C.int(pos)))
}

func (cHost) FilterClientID(fctx unsafe.Pointer) uint64 {
	return uint64(C.hostmod_command_filter_get_client_id((*C.HostModuleCommandFilterCtx)(fctx)))
}
